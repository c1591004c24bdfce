// Package meridian provides a Go client for a Tile38-compatible
// geospatial database, built around typed command synthesis: every
// operation is assembled as a validated textual command and relayed to
// the server's JSON endpoint.
//
//	client, _ := meridian.New(ctx, meridian.WithTile38("localhost:9851", ""))
//	defer client.Close()
//
//	_ = client.Objects("fleet").Set("truck1").
//	    Point(meridian.Point{Lat: 33.5123, Lon: -112.2693}).
//	    Field("speed", 90).
//	    Do(ctx)
//
//	nearby, _ := client.Search("fleet").Nearby(ctx,
//	    meridian.Point{Lat: 33.5, Lon: -112.26}, 6000,
//	    meridian.Where("speed", 70), meridian.Limit(10),
//	)
//
// Geofence webhooks register through the hook service:
//
//	_ = client.Hooks().Set(ctx, meridian.HookSpec{
//	    Name:       "warehouse",
//	    Endpoint:   "http://10.0.20.78:9000/endpoint",
//	    Collection: "fleet",
//	    Fence:      meridian.FenceNearby,
//	    Detect:     []meridian.DetectEvent{meridian.DetectEnter, meridian.DetectExit},
//	    Area:       meridian.AreaCircle(meridian.Point{Lat: 33.462, Lon: -112.268}, 6000),
//	})
package meridian
