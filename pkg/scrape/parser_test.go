package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowd-dashboard/pkg/model"
)

func newTestParser(t *testing.T, sink Sink) *Parser {
	t.Helper()
	m, err := newMetrics(prometheus.NewRegistry(), nil)
	require.NoError(t, err)
	log, _ := logtest.NewNullLogger()
	return NewParser(context.Background(), sink, m, log)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    model.Samples
		wantErr bool
	}{
		{name: "两个样本", data: scenarioBody, want: model.Samples{{Time: 1000, Count: 5}, {Time: 1060, Count: 12}}},
		{name: "空数组", data: `[]`, want: model.Samples{}},
		{name: "前后空白", data: " \n[{\"time\":1,\"count\":2}]\n", want: model.Samples{{Time: 1, Count: 2}}},
		{name: "null", data: `null`, wantErr: true},
		{name: "对象而非数组", data: `{"time":1,"count":2}`, wantErr: true},
		{name: "非 JSON", data: `<html></html>`, wantErr: true},
		{name: "空 body", data: ``, wantErr: true},
		{name: "字段类型错误", data: `[{"time":"x","count":1}]`, wantErr: true},
		{name: "截断的数组", data: `[{"time":1,"count":1}`, wantErr: true},
		{name: "带小数的时间戳", data: `[{"time":1700000000.123,"count":5}]`, want: model.Samples{{Time: 1700000000.123, Count: 5}}},
		{name: "整数值的浮点 count", data: `[{"time":1000,"count":5.0}]`, want: model.Samples{{Time: 1000, Count: 5}}},
		{name: "指数形式的 count", data: `[{"time":1000,"count":1e1}]`, want: model.Samples{{Time: 1000, Count: 10}}},
		{name: "小数 count", data: `[{"time":1000,"count":5.5}]`, wantErr: true},
		{name: "过大的 count", data: `[{"time":1000,"count":1e300}]`, wantErr: true},
		{name: "null 元素", data: `[null]`, wantErr: true},
		{name: "缺少 count", data: `[{"time":1000}]`, wantErr: true},
		{name: "缺少 time", data: `[{"count":3}]`, wantErr: true},
		{name: "第二个元素缺字段", data: `[{"time":1000,"count":1},{}]`, wantErr: true},
		{name: "count 为 null", data: `[{"time":1000,"count":null}]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrDecode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParser_DropsStaleBody(t *testing.T) {
	sink := &fakeSink{}
	p := newTestParser(t, sink)
	now := time.Now()

	require.NoError(t, p.parse(NewBody(2, "u", []byte(`[{"time":1060,"count":12}]`), now)))
	// tick 1 比 tick 2 更晚返回, 应被丢弃
	require.NoError(t, p.parse(NewBody(1, "u", []byte(`[{"time":1000,"count":5}]`), now)))

	samples, n := sink.last()
	assert.Equal(t, 1, n)
	assert.Equal(t, 12, samples.Latest())
	assert.Equal(t, float64(1), testutil.ToFloat64(p.metrics.staleBodies))
}

func TestParser_DecodeFailureKeepsState(t *testing.T) {
	sink := &fakeSink{}
	p := newTestParser(t, sink)
	now := time.Now()

	require.NoError(t, p.parse(NewBody(1, "u", []byte(scenarioBody), now)))
	err := p.parse(NewBody(2, "u", []byte(`not json`), now))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)

	// 失败的 tick 不推进 lastTick, 也不调用 sink
	assert.Equal(t, uint64(1), p.lastTick)
	samples, n := sink.last()
	assert.Equal(t, 1, n)
	assert.Equal(t, 12, samples.Latest())

	require.NoError(t, p.parse(NewBody(3, "u", []byte(`[]`), now)))
	samples, n = sink.last()
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, samples.Latest())
}

func TestParser_MalformedSampleAbortsTick(t *testing.T) {
	sink := &fakeSink{}
	p := newTestParser(t, sink)
	now := time.Now()

	require.NoError(t, p.parse(NewBody(1, "u", []byte(scenarioBody), now)))
	for i, data := range []string{`[null]`, `[{"time":1000}]`, `[{"count":4}]`} {
		err := p.parse(NewBody(uint64(2+i), "u", []byte(data), now))
		assert.ErrorIs(t, err, ErrDecode, data)
	}

	samples, n := sink.last()
	assert.Equal(t, 1, n)
	assert.Equal(t, 12, samples.Latest())
	assert.Equal(t, float64(3), testutil.ToFloat64(p.metrics.failures.WithLabelValues(reasonDecode)))
}

func TestParser_Consume(t *testing.T) {
	sink := &fakeSink{}
	p := newTestParser(t, sink)
	p.start()
	require.NoError(t, p.produce(NewBody(1, "u", []byte(scenarioBody), time.Now())))
	require.Eventually(t, func() bool {
		_, n := sink.last()
		return n == 1
	}, time.Second, 5*time.Millisecond)
	p.stop()

	assert.ErrorIs(t, p.produce(NewBody(2, "u", []byte(`[]`), time.Now())), context.Canceled)
	assert.NoError(t, p.produce(nil))
}
