// Package aspects composes independently implemented providers into a single
// composite that satisfies the union of their capability interfaces.
//
// Capability interfaces are registered with the capability package. Compose
// routes every method of every interface a provider implements to that
// provider, later providers overriding earlier ones. Add and Remove change the
// routing in place; removal re-resolves vacated capabilities against the
// remaining providers, newest first. As presents a composite, or any other
// object that structurally fits, as one target interface through an adapter
// registered with RegisterView.
//
//	capability.MustRegister[Reader]()
//	capability.MustRegister[Writer]()
//
//	comp, err := aspects.Compose(reader, writer)
//	if err != nil {
//	    return err
//	}
//	rw, err := aspects.As[ReadWriter](comp)
package aspects
