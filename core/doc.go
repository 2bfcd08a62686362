// Package core holds the session authentication lifecycle for the management
// center API: the immutable credential store, the staged request builder and
// the driver that threads both through each exchange. Transport and endpoint
// tables are collaborators supplied from outside; core must not import them.
package core
