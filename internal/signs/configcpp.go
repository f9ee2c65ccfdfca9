package signs

import (
	"bufio"
	"fmt"
	"io"
)

// WriteConfigCpp writes the addon config that registers one sign class per
// town through the PREAMBLE and SIGN macros of defines.hpp.
func WriteConfigCpp(w io.Writer, mapName string, towns []string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "#include \"defines.hpp\"\n")
	fmt.Fprintf(bw, "PREAMBLE(%s);\n", mapName)
	for _, town := range towns {
		fmt.Fprintf(bw, "SIGN(%s, %s);\n", FileName(town), mapName)
	}
	fmt.Fprintf(bw, "};")

	return bw.Flush()
}
