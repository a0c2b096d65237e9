package storage

import (
	"crowd-dashboard/pkg/model"
	"sync"
)

type MemoryStorage struct {
	view  *model.View
	mutex sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Replace 整体替换当前视图, 调用方之后修改 v 不影响已存储的内容
func (ms *MemoryStorage) Replace(v *model.View) error {
	if v == nil {
		return ErrNilView
	}
	stored := cloneView(*v)
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.view = &stored
	return nil
}

func (ms *MemoryStorage) Current() (model.View, error) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	if ms.view == nil {
		return model.View{}, ErrNoView
	}
	return cloneView(*ms.view), nil
}

func cloneView(v model.View) model.View {
	v.Chart = model.ChartData{
		Labels: append(make([]string, 0, len(v.Chart.Labels)), v.Chart.Labels...),
		Counts: append(make([]int, 0, len(v.Chart.Counts)), v.Chart.Counts...),
	}
	return v
}
