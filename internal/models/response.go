package models

// Response is the envelope every endpoint serializes. List operations carry
// a pagination block; single-entity and bulk-delete operations leave it
// null on the wire.
type Response[T any] struct {
	Data       T           `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

func NewResponse[T any](data T, pagination *Pagination) Response[T] {
	return Response[T]{Data: data, Pagination: pagination}
}
