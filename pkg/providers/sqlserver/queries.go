package sqlserver

const (
	queryServerVersion = `select @@VERSION`

	// OBJECT_ID returns NULL for a table the caller cannot see, so a
	// missing table and an invisible table look the same here.
	queryTableExists = `select OBJECT_ID(@p1, 'U')`

	queryTableList = `
		select s.name as schema_name, t.name as table_name
		from sys.tables t
		inner join sys.schemas s
			on s.schema_id = t.schema_id
		order by s.name, t.name;
	`

	// Heap (index_id 0) and clustered index (index_id 1) are mutually
	// exclusive, so this counts each partition exactly once.
	queryPartitionCount = `
		select count(*)
		from sys.partitions
		where object_id = OBJECT_ID(@p1)
			and index_id in (0, 1);
	`

	queryPartitionKeyInfo = `
		select top 1 pf.name as function_name, c.name as column_name
		from sys.indexes i
		inner join sys.partition_schemes ps
			on ps.data_space_id = i.data_space_id
		inner join sys.partition_functions pf
			on pf.function_id = ps.function_id
		inner join sys.index_columns ic
			on ic.object_id = i.object_id
			and ic.index_id = i.index_id
			and ic.partition_ordinal > 0
		inner join sys.columns c
			on c.object_id = ic.object_id
			and c.column_id = ic.column_id
		where i.object_id = OBJECT_ID(@p1)
			and i.index_id in (0, 1);
	`

	queryDatabaseUpdateability = `select cast(DATABASEPROPERTYEX(DB_NAME(), 'Updateability') as nvarchar(60))`

	queryDatabaseIsSnapshot = `
		select count(*)
		from sys.databases
		where database_id = DB_ID()
			and source_database_id is not null;
	`

	// Two samples of a cumulative counter taken server-side, one round
	// trip. The rate comes back in counter units per second.
	queryThroughputSample = `
		declare @first bigint, @second bigint;
		select @first = cntr_value
		from sys.dm_os_performance_counters
		where counter_name = @p1 and instance_name = DB_NAME();
		waitfor delay @p2;
		select @second = cntr_value
		from sys.dm_os_performance_counters
		where counter_name = @p1 and instance_name = DB_NAME();
		select cast(@second - @first as float) / @p3;
	`
)
