package sqlinline

const QAppendDelivery = `--sql 98a111e7-dd27-4dbb-bc4d-85b27505895d
insert into deliveries(id, subject_id, template_key, granted_tier, idempotency_key, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, now())
on conflict (subject_id, template_key, idempotency_key) do nothing
returning id, created_at;
`

const QSelectDeliveryByKey = `--sql 121b09f0-7807-43a2-aeac-e31635ecb25d
select id, subject_id, template_key, granted_tier, idempotency_key, created_at
from deliveries
where subject_id = $1::text and template_key = $2::text and idempotency_key = $3::text;
`

const QListDeliveriesForSubject = `--sql cfb8e3e2-e8b0-435c-a22a-5dfd3051f4c1
select id, subject_id, template_key, granted_tier, idempotency_key, created_at
from deliveries
where subject_id = $1::text
order by created_at asc, id asc;
`
