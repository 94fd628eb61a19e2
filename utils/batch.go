package utils

import (
	"context"
	"sort"
	"sync"
)

// BatchConfig 批量查询配置
type BatchConfig struct {
	// Concurrency 并发数量
	Concurrency int
	// OnProgress 进度回调函数
	OnProgress func(progress BatchProgress)
}

// BatchProgress 批量查询进度
type BatchProgress struct {
	// Completed 已完成数量
	Completed int
	// Total 总数量
	Total int
	// Percentage 进度百分比（0-100）
	Percentage int
	// Success 成功数量
	Success int
	// Failed 失败数量
	Failed int
}

// DefaultBatchConfig 返回默认批量配置
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		Concurrency: 5,
	}
}

// BatchItemError 批量查询中单项的失败
type BatchItemError struct {
	// Index 输入项索引
	Index int
	// Err 错误信息
	Err error
}

// BatchResult 批量查询结果
//
// Results 与输入一一对应（按索引对齐），失败项保留零值并记入 Errors；
// 调用方据此做逐项降级，而不是整批失败。
type BatchResult[R any] struct {
	// Results 与输入等长的结果切片
	Results []R
	// Errors 失败项（按索引升序）
	Errors []BatchItemError
	// Total 总数量
	Total int
	// Success 成功数量
	Success int
	// Failed 失败数量
	Failed int
}

// FailedIndex 检查指定索引的项是否失败
func (r *BatchResult[R]) FailedIndex(index int) bool {
	for _, e := range r.Errors {
		if e.Index == index {
			return true
		}
	}
	return false
}

// BatchQuery 有界并发的批量查询
//
// 对一组输入并发调用查询函数，所有项完成（或各自失败）后才返回；
// 单项失败不会中断其余项。
//
// 示例：
//
//	result, _ := BatchQuery(ctx, ids, func(ctx context.Context, id uint64, index int) (bool, error) {
//	    return gateway.CheckOwnership(ctx, account, id)
//	}, DefaultBatchConfig())
func BatchQuery[T any, R any](
	ctx context.Context,
	items []T,
	queryFn func(ctx context.Context, item T, index int) (R, error),
	config *BatchConfig,
) *BatchResult[R] {
	if config == nil {
		config = DefaultBatchConfig()
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	result := &BatchResult[R]{
		Results: make([]R, len(items)),
		Total:   len(items),
	}
	if len(items) == 0 {
		return result
	}

	var mu sync.Mutex
	completed := 0

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, item := range items {
		wg.Add(1)
		go func(index int, item T) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			value, err := queryFn(ctx, item, index)

			mu.Lock()
			if err != nil {
				result.Errors = append(result.Errors, BatchItemError{Index: index, Err: err})
				result.Failed++
			} else {
				result.Results[index] = value
				result.Success++
			}
			completed++
			progress := BatchProgress{
				Completed:  completed,
				Total:      result.Total,
				Percentage: (completed * 100) / result.Total,
				Success:    result.Success,
				Failed:     result.Failed,
			}
			mu.Unlock()

			if config.OnProgress != nil {
				config.OnProgress(progress)
			}
		}(i, item)
	}

	wg.Wait()

	sort.Slice(result.Errors, func(a, b int) bool {
		return result.Errors[a].Index < result.Errors[b].Index
	})

	return result
}
