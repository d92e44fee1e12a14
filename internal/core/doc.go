// Package core holds the book import logic, independent of HTTP or any
// particular database.
//
// # Import flow
//
// [Service.Import] runs one upload synchronously:
//
//  1. Acquire a slot from the [UploadLimiter]
//  2. Save the raw file to the [TempStore]
//  3. Decode the first sheet
//  4. Map every row to a [Book] with [MapRow] and validate the batch
//  5. Insert all books with one [BookWriter] call
//  6. Remove the temp file
//
// A failure in steps 2 to 5 is returned as a [*ProcessingError] naming the
// failed [Stage]; the temp file is then left for the sweeper. A request
// without a file fails with [ErrMissingFile] before anything is written.
//
// # Error codes
//
// Technical errors are mapped to support codes with [MapError] so log lines
// and user-facing messages can be correlated. See errors.go for the list.
package core
