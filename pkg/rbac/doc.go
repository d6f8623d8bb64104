// Package rbac evaluates role-based permission checks within the current
// tenant.
//
// Permission levels are totally ordered integers: View < Create < Update
// < Delete. Holding a level on a resource implies every level below it on
// that resource, so a role needs exactly one row per resource; grants
// replace instead of accumulating. Roles, their permission rows, and the
// user-role assignments are tenant-scoped data, editable at runtime —
// adding a role or resource is a data change, never a new type.
//
// Every deny looks the same to the caller: a missing role, a missing
// permission row, and a role held in a different tenant are deliberately
// indistinguishable, so responses cannot leak whether a resource or role
// exists. Administrative mutations are themselves gated by a check on the
// "admin" resource.
package rbac
