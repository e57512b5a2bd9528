package sqlinline

const QInsertDonation = `--sql 3f2c1d9a-74b0-4a8e-9f61-5b2d8c4e7a10
insert into donation_records(donor_identity, recipient_identity, amount_cents, created_at)
values ($1::text, $2::text, $3::bigint, now())
returning id, created_at;
`

const QScanDonations = `--sql b8e5a2c4-1f6d-4e3b-8a97-0c2d4f6e8b31
select id, donor_identity, recipient_identity, amount_cents, created_at
from donation_records
order by id asc;
`

const QFindByDonor = `--sql 6d4a8f2e-9c1b-4750-b3e6-7a5c9d1f3e52
select id, donor_identity, recipient_identity, amount_cents, created_at
from donation_records
where donor_identity = $1::text
order by id asc;
`
