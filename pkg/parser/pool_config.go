package parser

import (
	"github.com/gnana997/tsstruct/pkg/util"
)

// getPoolSize returns the number of parsers kept per grammar. It matches the
// batch worker count so workers never wait on a parser.
func getPoolSize(override int) int {
	return util.GetOptimalPoolSizeWithOverride(override)
}
