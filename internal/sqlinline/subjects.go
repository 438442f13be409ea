package sqlinline

const QSelectSubjectTier = `--sql cee0d3a7-6c4e-4bba-b976-791c27b83a99
select tier
from subjects
where id = $1::text;
`

const QUpsertSubjectTier = `--sql c50f011e-1ccd-41b6-b6d8-65573b224a4c
insert into subjects(id, tier, created_at, updated_at)
values ($1::text, $2::text, now(), now())
on conflict (id) do update
set tier = excluded.tier, updated_at = now();
`
