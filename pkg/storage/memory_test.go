package storage

import (
	"crowd-dashboard/pkg/model"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 辅助函数：创建测试用的 View
func createTestView(counts ...int) *model.View {
	samples := model.Samples{}
	for i, c := range counts {
		samples = samples.Append(model.Sample{Time: float64(1000 + 60*i), Count: c})
	}
	v := model.NewView(samples, model.NewTimeFormatter("15:04:05", time.UTC), time.Unix(0, 0))
	return &v
}

func TestMemoryStorage_Replace(t *testing.T) {
	t.Run("首次写入", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Replace(createTestView(5, 12)))

		v, err := storage.Current()
		require.NoError(t, err)
		assert.Equal(t, "People Count: 12", v.Text)
		assert.Equal(t, []int{5, 12}, v.Chart.Counts)
	})

	t.Run("整体替换", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Replace(createTestView(1, 2, 3)))
		require.NoError(t, storage.Replace(createTestView()))

		v, err := storage.Current()
		require.NoError(t, err)
		assert.Equal(t, "People Count: 0", v.Text)
		assert.Empty(t, v.Chart.Counts)
		assert.Empty(t, v.Chart.Labels)
	})

	t.Run("nil View 参数", func(t *testing.T) {
		storage := NewMemoryStorage()
		assert.ErrorIs(t, storage.Replace(nil), ErrNilView)
	})

	t.Run("写入后修改原对象不影响存储", func(t *testing.T) {
		storage := NewMemoryStorage()
		view := createTestView(5)
		require.NoError(t, storage.Replace(view))
		view.Chart.Counts[0] = 99

		v, err := storage.Current()
		require.NoError(t, err)
		assert.Equal(t, []int{5}, v.Chart.Counts)
	})
}

func TestMemoryStorage_Current(t *testing.T) {
	t.Run("未写入时返回 ErrNoView", func(t *testing.T) {
		_, err := NewMemoryStorage().Current()
		assert.ErrorIs(t, err, ErrNoView)
	})
}

// TestMemoryStorage_Concurrent 并发读写不应产生数据竞争
func TestMemoryStorage_Concurrent(t *testing.T) {
	storage := NewMemoryStorage()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = storage.Replace(createTestView(n, n+1))
		}(i)
		go func() {
			defer wg.Done()
			if v, err := storage.Current(); err == nil {
				assert.Equal(t, len(v.Chart.Labels), len(v.Chart.Counts))
			}
		}()
	}
	wg.Wait()

	v, err := storage.Current()
	require.NoError(t, err)
	assert.Len(t, v.Chart.Counts, 2)
}
