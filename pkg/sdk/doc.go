// Package listingsearch embeds the marketplace listing search engine in a Go
// program, without the HTTP service in front of it.
//
// The client reads listings from Postgres or from a YAML seed file:
//
//	client, _ := listingsearch.New(ctx, listingsearch.WithPostgres(dsn))
//	defer client.Close()
//
//	res, _ := client.Advanced(ctx, listingsearch.Query{
//	    Text:     "airpods",
//	    BrandIDs: []string{"apple"},
//	    MaxPrice: listingsearch.Price(300),
//	    Radius:   &listingsearch.Radius{CityID: "london", Km: 50},
//	    Sort:     listingsearch.SortDistance,
//	})
//	for _, l := range res.Page.Listings {
//	    fmt.Println(l.Title, l.Price, *l.DistanceKm)
//	}
//
// Facet counts follow the marketplace rule: each facet is counted with
// every active filter except its own, so the counts show what selecting a
// value would return.
package listingsearch
