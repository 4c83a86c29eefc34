package sqlinline

const QEnqueueValidationJob = `--sql d7f3b1a5-8c2e-4d96-b4a7-6e1c9f3d5b28
insert into validation_jobs(id, draft_id, tolerance_percent, status, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::float8, 'QUEUED', now(), now());
`

const QClaimValidationJob = `--sql e9a5d3c1-2b7f-4e58-a690-8d4b2f6c1e37
update validation_jobs
set status = 'RUNNING', updated_at = now()
where id = (
  select id from validation_jobs
  where status = 'QUEUED'
  order by created_at
  limit 1
  for update skip locked
)
returning id, draft_id, tolerance_percent;
`

const QCompleteValidationJob = `--sql 1c6e4a8f-5d3b-4f92-87c4-9b2e7d5a3f61
update validation_jobs
set status = 'SUCCEEDED', report = $2::jsonb, updated_at = now()
where id = $1::uuid;
`

const QFailValidationJob = `--sql 3e9b7d5c-4a1f-4c86-92d8-7f5a3b1e8c49
update validation_jobs
set status = 'FAILED', error_message = $2::text, updated_at = now()
where id = $1::uuid;
`
