// The config package encapsulates configuration for the procdiff
// command.
//
// Configuration lives in a file called 'config' within a base
// directory, which defaults to $PROCDIFF_BASE if set, otherwise to
// $HOME/lib/procdiff. The file holds one "key value" pair per line;
// blank lines and lines starting with '#' are ignored. A missing file
// means all defaults. Command line flags override the file.
package config
