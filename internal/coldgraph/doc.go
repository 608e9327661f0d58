// Package coldgraph converts pipeline graphs to and from their "cold" form.
//
// A warm graph holds live node instances. A cold graph references nodes by
// their registry action name and keeps their construction parameters, so it
// can be written to disk as a node-link YAML document and rebuilt later:
//
//	doc, _ := coldgraph.CoolDown(ctx, g)      // warm graph -> document
//	_ = coldgraph.Encode(w, doc)               // document -> YAML
//	doc, _ = coldgraph.Decode(r)               // YAML -> document
//	g, _ = coldgraph.FromDocument(ctx, doc)    // document -> cold graph
//	_ = coldgraph.WarmUp(ctx, g, reg)          // cold graph -> warm graph
//
// Several graph positions may share one node instance. The first position
// stores the action and its init parameters; later ones store an
// instance_id back-reference, and warming up rebinds them to the instance
// built for the first position.
package coldgraph
