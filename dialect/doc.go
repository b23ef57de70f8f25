// Package dialect defines the driver abstraction compiled statements flow
// through. The compilers in dialect/cypher produce statement text plus a
// flat string-keyed parameter map; a Driver executes that pair and returns
// ordered rows, each a string-keyed value map matching the RETURN shape.
//
// # Driver Interface
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	}
//
// The Tx interface extends ExecQuerier with Commit and Rollback. Write
// statement lists must be executed in emission order within one transaction;
// the compilers guarantee emission order, the driver owns atomicity.
//
// # Implementations
//
// dialect/cypher provides a neo4j-backed Driver plus a statistics wrapper
// that layers query counters and slow-query logging over any Driver.
package dialect
