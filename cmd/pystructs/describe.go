package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/imgurbot12/pystructs"
	"github.com/imgurbot12/pystructs/pkg/schema"
)

func describe(o *options, s *schema.Schema, _ []string, _ io.Reader, stdout io.Writer) error {
	names := s.Names()
	if o.name != "" {
		names = []string{o.name}
	}
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for i, name := range names {
		st, err := s.Struct(name)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\t%s\n", st.Name, sizeText(st.Size()))
		for _, f := range st.Fields {
			var notes string
			if f.Optional {
				notes = "optional"
			}
			if f.Default != nil {
				if notes != "" {
					notes += ", "
				}
				notes += fmt.Sprintf("default %v", f.Default)
			}
			fmt.Fprintf(w, "  %s\t%v\t%s\t%s\n", f.Name, f.Codec, sizeText(pystructs.FixedSize(f.Codec)), notes)
		}
	}
	return w.Flush()
}

func sizeText(n int) string {
	if n < 0 {
		return "variable"
	}
	return fmt.Sprintf("%d bytes", n)
}
