package abstract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhysicalPredicate(t *testing.T) {
	task := CopyTask{
		Table:           TableID{Namespace: "dbo", Name: "orders"},
		PartitionNumber: 3,
		Scheme:          NewPhysicalScheme("pfOrderDate", "OrderDate", 5),
	}
	require.Equal(t, "$partition.pfOrderDate(OrderDate) = 3", task.Predicate())
	require.Equal(t, "dbo.orders [3/5] (physical)", task.String())
}

func TestLogicalPredicate(t *testing.T) {
	task := CopyTask{
		Table:           TableID{Namespace: "dbo", Name: "orders"},
		PartitionNumber: 1,
		Scheme:          NewLogicalScheme(4),
	}
	require.Equal(t, "ABS(CAST(%%PhysLoc%% AS BIGINT)) % 4 = 0", task.Predicate())

	task.PartitionNumber = 4
	require.Equal(t, "ABS(CAST(%%PhysLoc%% AS BIGINT)) % 4 = 3", task.Predicate())
}

func TestSingleLogicalPartitionMeansFullScan(t *testing.T) {
	task := CopyTask{
		Table:           TableID{Namespace: "dbo", Name: "orders"},
		PartitionNumber: 1,
		Scheme:          NewLogicalScheme(1),
	}
	require.Equal(t, "", task.Predicate())
}

// Every physical row position must fall into exactly one logical partition:
// the remainders on the right-hand side of the generated predicates cover
// 0..N-1 with no repetition.
func TestLogicalPredicatesDisjointAndExhaustive(t *testing.T) {
	for _, partitions := range []int{2, 4, 7, 32} {
		seen := map[string]bool{}
		for number := 1; number <= partitions; number++ {
			task := CopyTask{
				Table:           TableID{Namespace: "dbo", Name: "t"},
				PartitionNumber: number,
				Scheme:          NewLogicalScheme(partitions),
			}
			predicate := task.Predicate()
			require.Equal(t, fmt.Sprintf("ABS(CAST(%%%%PhysLoc%%%% AS BIGINT)) %% %v = %v", partitions, number-1), predicate)
			require.False(t, seen[predicate])
			seen[predicate] = true
		}
		require.Len(t, seen, partitions)
	}
}
