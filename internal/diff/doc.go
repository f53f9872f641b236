// Package diff renders unified diffs of the code carried by process nodes,
// such as the script of a manipulate task or the finalize block of a call.
// The output uses the usual "@@ -l,c +l,c @@" hunk headers and a
// configurable number of context lines.
//
// Line diffs come from https://github.com/andreyvit/diff, which in turn
// builds on the diffmatchpatch package (https://github.com/sergi/go-diff).
package diff
