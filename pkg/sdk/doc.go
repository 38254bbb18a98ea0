// Package insights provides an embedded Go client for building footprint
// resolution and street-level building analysis.
//
// The client loads a GeoJSON footprint dataset once, resolves clicked map
// coordinates to buildings, and generates AI insights from building
// attributes plus optional Street View imagery:
//
//	client, _ := insights.New(ctx,
//	    insights.WithFootprintsFile("buildings.geojson"),
//	    insights.WithGemini(os.Getenv("GEMINI_API_KEY")),
//	    insights.WithStreetView(os.Getenv("STREET_VIEW_API_KEY")),
//	)
//	defer client.Close()
//
//	res, _ := client.Resolve(17.4070, 78.4456)
//	result, _ := client.Insights(ctx, res.Index)
//
// A Valkey-backed response cache is optional; without it every insight
// request reaches the vision model.
package insights
