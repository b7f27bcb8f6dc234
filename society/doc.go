package society

// society owns the three tables of a residential society (users, admins and
// houses) as one explicit piece of state, opened at startup from the data
// directory and saved on every change. It also carries the admin and resident
// operations the surrounding web layer calls: adding flats, editing or
// removing residents, logins and listings.
