// Package salesdk is the Go client for the canvasser field-sales API.
//
// The same package defines the wire types and error codes the server
// speaks, so handlers and clients cannot drift apart.
//
// Typical usage:
//
//	client := salesdk.NewClient("http://localhost:8080")
//	if err := client.Register(ctx, salesdk.RegisterRequest{...}); err != nil { ... }
//	session, err := client.Login(ctx, "ann@example.com", "secret")
//	if err != nil { ... }
//	_, err = session.CheckIn(ctx, salesdk.Location{Latitude: -27.5, Longitude: 153.0})
//	sale, err := session.RecordSale(ctx, salesdk.SaleInput{...})
//	today, err := session.ListTodaySales(ctx)
package salesdk
