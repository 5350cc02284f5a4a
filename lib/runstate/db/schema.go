package db

const Schema = `
create table if not exists run_state (
	key text not null primary key,
	value text not null
);
`
