package sqlinline

const QSelectDeliveryStats = `--sql b837d46c-9a10-43e4-8049-e4c6326bdc08
select granted_tier, count(*)
from deliveries
group by granted_tier
order by granted_tier;
`

const QSelectRecentDeliveries = `--sql c4a0a0ed-30b0-4903-9236-a3017a83f607
select id, subject_id, template_key, granted_tier, idempotency_key, created_at
from deliveries
order by created_at desc
limit $1::int;
`
