// Package fieldcodec embeds a fieldcodec shard in a Go program: exact-match
// string fields that can be stored, indexed as whole-value terms and sorted
// through doc-value columns, over an in-memory, Redis or Valkey store.
//
// # Low-level API
//
//	client, _ := fieldcodec.New(ctx,
//	    fieldcodec.WithValkey("localhost:6379", ""),
//	    fieldcodec.WithSchema("products",
//	        fieldcodec.Field{Name: "sku", Indexed: true, Stored: true, DocValues: true},
//	        fieldcodec.Field{Name: "tags", Stored: true, DocValues: true, MultiValued: true},
//	    ),
//	)
//	_ = client.Index(ctx, 1, map[string][]string{"sku": {"A-1"}, "tags": {"new", "sale"}})
//	res, _ := client.Sort(ctx, "sku", false, 10)
//
// # Typed API
//
//	type Product struct {
//	    SKU  string   `fieldcodec:"sku,indexed,stored,docvalues"`
//	    Tags []string `fieldcodec:"tags,stored,docvalues"`
//	}
//
//	client, _ := fieldcodec.New(ctx, fieldcodec.WithSchemaOf[Product]("products"))
//	idx, _ := fieldcodec.NewIndex[Product](client)
//	_ = idx.Put(ctx, 1, Product{SKU: "A-1", Tags: []string{"new"}})
//	hits, _ := idx.Sort(ctx, "sku", false, 10)
package fieldcodec
