package records

// records holds the value types stored in the three society tables (users,
// admins and houses) with the JSON field names used by the persisted table
// files. It has no behavior beyond small helpers for the occupancy fields.
