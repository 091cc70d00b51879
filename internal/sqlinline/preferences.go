package sqlinline

const QSelectTransparentBackground = `--sql 3e8f1c52-7a41-4b9d-8c6e-2f90d1a4b7e3
select transparent_background
from editor_preferences
where owner = $1;`

const QUpsertTransparentBackground = `--sql 9b24d7f0-5c13-4e8a-b1d6-4a7e90c2f815
insert into editor_preferences(owner, transparent_background, updated_at)
values ($1, $2, now())
on conflict (owner) do update
set transparent_background = excluded.transparent_background,
    updated_at = now();`
