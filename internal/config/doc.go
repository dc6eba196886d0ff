// Package config defines the application configuration structure and its
// loading logic. Configuration comes from an optional YAML file overridden
// by CHARFORGE_-prefixed environment variables, and is validated before
// use. Provider credentials and the database URL are deliberately
// optional: each absence degrades exactly one capability instead of
// failing startup.
package config
