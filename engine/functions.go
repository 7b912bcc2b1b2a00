package engine

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	sqlite "modernc.org/sqlite"

	"github.com/viant/annreg/ann"
	"github.com/viant/annreg/vector"
)

// Index is the registry surface reachable from SQL.
type Index interface {
	Add(name string, v vector.Vector) (int, error)
	Len(name string) (int, error)
	Search(name string, k int, query vector.Vector) ([]ann.Result, error)
}

var (
	vectorOnce   sync.Once
	vectorErr    error
	registryOnce sync.Once
	registryErr  error
	current      atomic.Pointer[indexHolder]
)

type indexHolder struct{ index Index }

// RegisterVectorFunctions registers vec_cosine and vec_l2.
func RegisterVectorFunctions() error {
	vectorOnce.Do(func() {
		vectorErr = errors.Join(
			sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosineImpl),
			sqlite.RegisterDeterministicScalarFunction("vec_l2", 2, vecL2Impl),
		)
	})
	return vectorErr
}

// RegisterRegistryFunctions registers ann_add, ann_count and ann_search
// bound to index. Later calls rebind the functions to a new index.
func RegisterRegistryFunctions(index Index) error {
	if index == nil {
		return errors.New("engine: nil index")
	}
	current.Store(&indexHolder{index: index})
	registryOnce.Do(func() {
		registryErr = errors.Join(
			sqlite.RegisterScalarFunction("ann_add", 2, annAddImpl),
			sqlite.RegisterScalarFunction("ann_count", 1, annCountImpl),
			sqlite.RegisterScalarFunction("ann_search", 3, annSearchImpl),
		)
	})
	return registryErr
}

func boundIndex() (Index, error) {
	h := current.Load()
	if h == nil {
		return nil, errors.New("engine: no index registry bound")
	}
	return h.index, nil
}

func asEmbedding(arg driver.Value) (vector.Vector, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

func asName(fn string, arg driver.Value) (string, error) {
	switch v := arg.(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case []byte:
		if len(v) > 0 {
			return string(v), nil
		}
	}
	return "", fmt.Errorf("%s: index name must be non-empty TEXT, got %T", fn, arg)
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_cosine: expected 2 arguments, got %d", len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	return vector.CosineSimilarity(a, b)
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_l2: expected 2 arguments, got %d", len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("vec: L2 dim mismatch %d vs %d", len(a), len(b))
	}
	return float64(vector.MetricEuclidean.Distance(a, 0, b, 0)), nil
}

func annAddImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("ann_add: expected 2 arguments, got %d", len(args))
	}
	index, err := boundIndex()
	if err != nil {
		return nil, err
	}
	name, err := asName("ann_add", args[0])
	if err != nil {
		return nil, err
	}
	v, err := asEmbedding(args[1])
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, errors.New("ann_add: empty embedding")
	}
	count, err := index.Add(name, v)
	if err != nil {
		return nil, err
	}
	return int64(count), nil
}

func annCountImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("ann_count: expected 1 argument, got %d", len(args))
	}
	index, err := boundIndex()
	if err != nil {
		return nil, err
	}
	name, err := asName("ann_count", args[0])
	if err != nil {
		return nil, err
	}
	count, err := index.Len(name)
	if err != nil {
		return nil, err
	}
	return int64(count), nil
}

type match struct {
	ID    uint64  `json:"id"`
	Score float32 `json:"score"`
}

func annSearchImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("ann_search: expected 3 arguments, got %d", len(args))
	}
	index, err := boundIndex()
	if err != nil {
		return nil, err
	}
	name, err := asName("ann_search", args[0])
	if err != nil {
		return nil, err
	}
	k, ok := args[1].(int64)
	if !ok || k < 0 {
		return nil, fmt.Errorf("ann_search: k must be a non-negative INTEGER, got %v", args[1])
	}
	query, err := asEmbedding(args[2])
	if err != nil {
		return nil, err
	}
	results, err := index.Search(name, int(k), query)
	if err != nil {
		return nil, err
	}
	matches := make([]match, len(results))
	for i, r := range results {
		matches[i] = match{ID: r.ID, Score: r.Score}
	}
	data, err := json.Marshal(matches)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
