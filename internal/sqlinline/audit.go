package sqlinline

const QInsertEditAudit = `--sql c51a0e97-2d84-4f6b-9a30-8e15b6d4c2f7
insert into edit_audit(
  id,
  session_id,
  op,
  ok,
  message,
  elapsed_ms
)
values (
  gen_random_uuid(),
  $1,
  $2,
  $3,
  $4,
  $5
);`
