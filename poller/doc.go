package poller

// poller runs a task on a fixed cadence. It knows nothing about what the
// task does; guards such as "only on the first of the month" belong inside
// the task itself.
