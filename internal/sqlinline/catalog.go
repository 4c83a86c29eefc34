package sqlinline

const QUpsertPrintFile = `--sql 5d2e8f1a-3c6b-4a90-8e7d-4f1b9c2a6d35
insert into print_files(id, width, height, dpi, updated_at)
values ($1::text, $2::int, $3::int, $4::int, now())
on conflict (id) do update
set width = excluded.width, height = excluded.height, dpi = excluded.dpi, updated_at = now();
`

const QUpsertVariantPrintFile = `--sql 8a1c5e3f-7d2b-4c69-9f80-6e4a2b8d1c57
insert into variant_print_files(variant_id, placement_key, print_file_id, updated_at)
values ($1::text, $2::text, $3::text, now())
on conflict (variant_id, placement_key) do update
set print_file_id = excluded.print_file_id, updated_at = now();
`

const QSelectVariantPrintFiles = `--sql 2f7b9d4e-5a1c-4e83-b6f2-8c3d7a5e1b49
select v.placement_key, p.id, p.width, p.height, p.dpi
from variant_print_files v
join print_files p on p.id = v.print_file_id
where v.variant_id = $1::text
order by v.placement_key;
`
