package fees

// fees computes maintenance fees and runs the monthly recompute cycle. The
// occupancy rule lives in Rates.Assess and is shared by the scheduled cycle
// and by manual edits, so both paths always bill the same way.
//
// The Engine is meant to be polled, typically once a day. Engine.Check only
// does any work on the first day of a month.
