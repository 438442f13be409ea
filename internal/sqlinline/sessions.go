package sqlinline

const QInsertCheckoutSession = `--sql 28ee01a8-cdf5-458d-870f-56638310c955
insert into checkout_sessions(id, subject_id, target_plan, template_key, amount_minor, currency, status, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::bigint, $6::text, $7::text, now(), now())
returning created_at;
`

const QSelectCheckoutSessionByID = `--sql e2fbe718-dcea-4da3-a71e-f62787faadb8
select id, subject_id, target_plan, template_key, amount_minor, currency, status,
       coalesce(gateway_session_id, ''), coalesce(transaction_id, ''), created_at, updated_at
from checkout_sessions
where id = $1::uuid;
`

const QSelectCheckoutSessionByGateway = `--sql 794732de-f189-4f0c-946a-b203a7159b5c
select id, subject_id, target_plan, template_key, amount_minor, currency, status,
       coalesce(gateway_session_id, ''), coalesce(transaction_id, ''), created_at, updated_at
from checkout_sessions
where gateway_session_id = $1::text;
`

const QAttachGatewaySession = `--sql a7bb4e8f-1718-4955-b5d9-212e979605c2
update checkout_sessions
set gateway_session_id = $2::text, status = 'pending', updated_at = now()
where id = $1::uuid and status = 'created';
`

const QTransitionCheckoutSession = `--sql ddf6213c-17e2-4560-b77e-0984436b7439
update checkout_sessions
set status = $3::text,
    transaction_id = coalesce(nullif($4::text, ''), transaction_id),
    updated_at = now()
where id = $1::uuid and status = $2::text;
`

const QSelectStalePendingSessions = `--sql 8b489452-00e4-4ca8-9856-e3ae276a0554
select id, subject_id, target_plan, template_key, amount_minor, currency, status,
       coalesce(gateway_session_id, ''), coalesce(transaction_id, ''), created_at, updated_at
from checkout_sessions
where status = 'pending' and updated_at < now() - $1::interval
order by updated_at asc
limit $2::int;
`
