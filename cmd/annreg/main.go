// Command annreg builds the registry as a C shared library:
//
//	go build -buildmode=c-shared -o libannreg.so ./cmd/annreg
//
// The generated header declares the exported functions below. Names and
// paths are NUL-terminated strings; vectors are arrays of dim floats, copied
// before the call returns. Results returned by ann_search are owned by the
// caller and released with ann_free_results.
package main

/*
#include <stdbool.h>
#include <stdlib.h>

typedef struct {
	size_t index;
	float score;
} ann_result;

typedef struct {
	ann_result *ptr;
	size_t len;
	size_t cap;
} ann_results;
*/
import "C"

import (
	"unsafe"

	"github.com/viant/annreg/boundary"
)

//export ann_new_index
func ann_new_index(name *C.char) {
	boundary.NewIndex(unsafe.Pointer(name))
}

//export ann_add
func ann_add(name *C.char, data *C.float, dim C.size_t) C.size_t {
	return C.size_t(boundary.Add(unsafe.Pointer(name), unsafe.Pointer(data), uintptr(dim)))
}

//export ann_len
func ann_len(name *C.char) C.size_t {
	return C.size_t(boundary.Len(unsafe.Pointer(name)))
}

//export ann_build
func ann_build(name *C.char) {
	boundary.Build(unsafe.Pointer(name))
}

//export ann_search
func ann_search(name *C.char, k C.size_t, data *C.float, dim C.size_t) C.ann_results {
	var out C.ann_results
	results := boundary.Search(unsafe.Pointer(name), uintptr(k), unsafe.Pointer(data), uintptr(dim))
	if len(results) == 0 {
		return out
	}
	ptr := C.malloc(C.size_t(len(results)) * C.size_t(unsafe.Sizeof(C.ann_result{})))
	if ptr == nil {
		return out
	}
	items := unsafe.Slice((*C.ann_result)(ptr), len(results))
	for i, r := range results {
		items[i].index = C.size_t(r.ID)
		items[i].score = C.float(r.Score)
	}
	out.ptr = (*C.ann_result)(ptr)
	out.len = C.size_t(len(results))
	out.cap = C.size_t(len(results))
	return out
}

//export ann_free_results
func ann_free_results(results C.ann_results) {
	if results.ptr != nil {
		C.free(unsafe.Pointer(results.ptr))
	}
}

//export ann_save
func ann_save(name, indexPath, elementsPath *C.char) C.bool {
	return C.bool(boundary.Save(unsafe.Pointer(name), unsafe.Pointer(indexPath), unsafe.Pointer(elementsPath)))
}

//export ann_load
func ann_load(name, indexPath, elementsPath *C.char) C.bool {
	return C.bool(boundary.Load(unsafe.Pointer(name), unsafe.Pointer(indexPath), unsafe.Pointer(elementsPath)))
}

//export ann_configure
func ann_configure(path *C.char) C.bool {
	return C.bool(boundary.Configure(unsafe.Pointer(path)))
}

func main() {}
