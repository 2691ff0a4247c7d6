// Package config loads camel-leaked settings from local and global YAML files.
// CLI code merges them with flags (flags win, then the repo-local file, then
// the global file) and maps the result onto engine options.
package config
