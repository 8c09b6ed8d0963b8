//go:build !buddydebug

package buddy

func debugAssertActive(ch *chunkHeader) {}
