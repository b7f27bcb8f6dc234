package userconfig

// userconfig reads the application's YAML configuration and validates it.
// Sections that are left out take their defaults, except for "tables", which
// must at least name the data directory.
