package sqlinline

const QSubmitApplicant = `--sql 4e7b2a91-3c5f-48d0-a6b8-9e1d3f5c7a24
insert into queue_entries(identity, description, proof_filename, submitted_at, status)
select $1::text, $2::text, $3::text, now(), 'pending'
where not exists (
  select 1 from queue_entries
  where identity = $1::text and status in ('pending', 'claimed')
)
returning id, submitted_at;
`

const QPendingPosition = `--sql 8a1c4e6f-2d9b-47a3-b5c8-0f3e6d9a2c45
select count(*) from queue_entries
where status = 'pending' and (submitted_at, id) <= ($1::timestamptz, $2::bigint);
`

const QPeekNext = `--sql 1b9e3d5c-7a2f-4c80-96d4-2e8b0a4f6c17
select identity, description, proof_filename, submitted_at, status
from queue_entries
where status = 'pending'
order by submitted_at asc, id asc
limit 1;
`

const QClaimEntry = `--sql 5c8f1a3d-6e4b-49c2-8d70-3a9e5b1d7f38
update queue_entries
set status = 'claimed', claim_token = $2::uuid, lease_expires_at = now() + $3::interval
where identity = $1::text and status = 'pending'
returning claim_token;
`

const QEntryStatus = `--sql 9d2b5e7a-4f1c-483e-a6d9-1c7f3b5e9a60
select status from queue_entries
where identity = $1::text
order by id desc
limit 1;
`

const QResolveServed = `--sql 2e6a9c1f-8b3d-45f7-9a82-4d0c6e8a2b49
update queue_entries
set status = 'served', claim_token = null, lease_expires_at = null, served_at = now()
where claim_token = $1::uuid and status = 'claimed';
`

const QResolveReleased = `--sql 7f3d6b9e-0a5c-42d8-b1e4-5f9a3c7e1d62
update queue_entries
set status = 'pending', claim_token = null, lease_expires_at = null
where claim_token = $1::uuid and status = 'claimed';
`

const QReapExpired = `--sql 0a4e7c2b-5d8f-461a-93b6-6e2a8d4f0c73
update queue_entries
set status = 'pending', claim_token = null, lease_expires_at = null
where status = 'claimed' and lease_expires_at < now();
`

const QHasServed = `--sql e5b8d1f4-9a6c-4730-85e2-7b3f9d5a1e84
select exists (
  select 1 from queue_entries where identity = $1::text and status = 'served'
);
`
