package httpkit

import "net/http"

// Route sugar. Bodied variants decode the request body into T through bind
// and validate it; body-less variants skip the body entirely. Both envelope
// the handler result, passing a ready-made Response through untouched.

type bodied[T any] = func(*http.Request, T) (any, error)

type bodiless = func(*http.Request) (any, error)

// GetJSON mounts a JSON-bodied handler under GET
func GetJSON[T any](r Router, path string, h bodied[T]) { r.Get(path, JSON(h)) }

// PostJSON mounts a JSON-bodied handler under POST
func PostJSON[T any](r Router, path string, h bodied[T]) { r.Post(path, JSON(h)) }

// PutJSON mounts a JSON-bodied handler under PUT
func PutJSON[T any](r Router, path string, h bodied[T]) { r.Put(path, JSON(h)) }

// PatchJSON mounts a JSON-bodied handler under PATCH
func PatchJSON[T any](r Router, path string, h bodied[T]) { r.Patch(path, JSON(h)) }

// DeleteJSON mounts a JSON-bodied handler under DELETE
func DeleteJSON[T any](r Router, path string, h bodied[T]) { r.Delete(path, JSON(h)) }

// OptionsJSON mounts a JSON-bodied handler under OPTIONS
func OptionsJSON[T any](r Router, path string, h bodied[T]) { r.Options(path, JSON(h)) }

// Get mounts a body-less handler under GET
func Get(r Router, path string, h bodiless) { r.Get(path, Call(h)) }

// Post mounts a body-less handler under POST
func Post(r Router, path string, h bodiless) { r.Post(path, Call(h)) }

// Put mounts a body-less handler under PUT
func Put(r Router, path string, h bodiless) { r.Put(path, Call(h)) }

// Patch mounts a body-less handler under PATCH
func Patch(r Router, path string, h bodiless) { r.Patch(path, Call(h)) }

// Delete mounts a body-less handler under DELETE
func Delete(r Router, path string, h bodiless) { r.Delete(path, Call(h)) }

// Options mounts a body-less handler under OPTIONS
func Options(r Router, path string, h bodiless) { r.Options(path, Call(h)) }
