package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"quizzz-client/internal/submit"
)

// render prints v as indented JSON, or calls text with an aligned writer.
func (rt *runtime) render(v any, text func(w *tabwriter.Writer)) error {
	if rt.format == "json" {
		enc := json.NewEncoder(rt.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	text(w)
	return w.Flush()
}

// reportFailure prints what a coordinator kept from a failed submission:
// field errors by path, object-level messages, or the generic message.
func reportFailure[T any](rt *runtime, snap submit.Snapshot[T]) {
	if !snap.Failed() {
		return
	}
	if snap.ErrorMessage != "" {
		fmt.Fprintf(rt.errOut, "error: %s\n", snap.ErrorMessage)
	}
	for _, msg := range snap.NonFieldErrors {
		fmt.Fprintf(rt.errOut, "error: %s\n", msg)
	}
	flat := snap.FormErrors.Flatten()
	for _, path := range sortedPaths(flat) {
		if path == submit.NonFieldKey {
			continue
		}
		for _, msg := range flat[path] {
			fmt.Fprintf(rt.errOut, "  %s: %s\n", path, msg)
		}
	}
}

func sortedPaths(flat map[string][]string) []string {
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

var errArgs = errors.New("invalid arguments")

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q: %w", name, arg, errArgs)
	}
	return id, nil
}

// parseIDs parses positional ids named by names, in order.
func parseIDs(args []string, names ...string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for i, name := range names {
		id, err := parseID(args[i], name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
