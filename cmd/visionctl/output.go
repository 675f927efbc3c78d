package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/samvad-hq/vision-client/pkg/apiclient"
)

// printResponse writes the response body as indented JSON on stdout. A non-2xx
// status, only seen in compatibility mode, is reported on stderr.
func (e *env) printResponse(resp *apiclient.Response) error {
	v, err := resp.Value()
	if err != nil {
		return err
	}
	if !resp.OK() && e.errOut != nil {
		fmt.Fprintln(e.errOut, color.YellowString("HTTP %d", resp.StatusCode))
	}
	return printJSON(e.out, v)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
