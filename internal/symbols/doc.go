// Package symbols implements the global symbol registry.
//
// The registry maps fully-qualified names to entries and owns every
// suspended request for a name that has not reached the wanted stage yet.
// A task asks for a name with Await and sleeps until the name is declared,
// published, completed or poisoned. Requests for names that will never
// appear are failed by the sweep: once every live task is blocked in the
// registry, pending names are poisoned with UnknownSymbol so that the
// waiting tasks resume and report.
//
// All state changes happen under one mutex, so a request can never miss
// the transition it waits for.
package symbols
