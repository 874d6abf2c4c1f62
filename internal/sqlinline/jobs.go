package sqlinline

const QJobsEnsureSchema = `--sql 570c0e63-0985-4756-8bbd-3a3d348f1803
create table if not exists jobs (
    id text primary key,
    kind text not null,
    scope text not null,
    owner_id text not null,
    status text not null,
    progress integer not null default 0,
    result text,
    error_message text not null default '',
    attempts integer not null default 0,
    params jsonb,
    estimated_seconds integer not null default 0,
    created_at timestamptz not null,
    updated_at timestamptz not null,
    started_at timestamptz,
    finished_at timestamptz
);
create index if not exists jobs_scope_created_idx on jobs (scope, created_at desc);
`

const QJobInsert = `--sql 792d4754-b43e-4af0-b5ae-d6fa4d9e3f14
insert into jobs (id, kind, scope, owner_id, status, progress, result, error_message, attempts, params, estimated_seconds, created_at, updated_at, started_at, finished_at)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`

const QJobUpdate = `--sql 913f47e9-c002-4d20-bc66-e64c06abd6c4
update jobs
set status = $2,
    progress = $3,
    result = $4,
    error_message = $5,
    attempts = $6,
    estimated_seconds = $7,
    updated_at = $8,
    started_at = $9,
    finished_at = $10
where id = $1;
`

const QJobGetByID = `--sql 8b45585a-0845-4e42-b8c8-06f27d85e51f
select id, kind, scope, owner_id, status, progress, result, error_message, attempts, params, estimated_seconds, created_at, updated_at, started_at, finished_at
from jobs
where id = $1;
`

const QJobListByScope = `--sql 81b4e1be-ed6e-4cfc-9b88-7febc6cfe556
select id, kind, scope, owner_id, status, progress, result, error_message, attempts, params, estimated_seconds, created_at, updated_at, started_at, finished_at
from jobs
where scope = $1
order by created_at desc
limit $2;
`

const QJobFailRunning = `--sql 63ac9f94-d2a5-41a9-8875-a797e3e5c01c
update jobs
set status = 'failed',
    error_message = $1,
    estimated_seconds = 0,
    updated_at = now(),
    finished_at = now()
where status = 'running';
`
