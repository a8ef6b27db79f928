// Package todo stores personal tasks and enforces that only a task's owner
// can change or remove it.
//
// Every read is filtered by owner and every write is conditioned on both the
// task id and the owner id, so ownership is checked by the store in the same
// operation that performs the write.
package todo
