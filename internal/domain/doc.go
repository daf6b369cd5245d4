// Package domain holds the Pharma-Cycle value types shared by handlers,
// services and repositories: disposals and their items, users, partner
// pharmacies, lookup entries and the analytics result shapes.
//
// Nothing here talks to a database or an HTTP request, and the package
// imports no other internal package. Tags describe the JSON and column
// names; methods are limited to pure helpers such as Day or Validate.
package domain
