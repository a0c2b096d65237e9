package model

import (
	"math"
	"time"
)

// Sample 是 /crowd_data 返回的一条读数, time 可以带小数
type Sample struct {
	Time  float64 `json:"time"`
	Count int     `json:"count"`
}

// 秒级时间戳按毫秒还原, 与浏览器端 new Date(time*1000) 一致
func (s Sample) Timestamp() time.Time {
	return time.UnixMilli(int64(math.Round(s.Time * 1000)))
}

// Samples 按时间从旧到新排列, 顺序由服务端保证
type Samples []Sample

func (s Samples) Append(sample Sample) Samples {
	return append(s, sample)
}

// Latest 返回最后一个样本的 count, 没有样本时返回 0
func (s Samples) Latest() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Count
}

func (s Samples) Counts() []int {
	counts := make([]int, len(s))
	for i, sample := range s {
		counts[i] = sample.Count
	}
	return counts
}
