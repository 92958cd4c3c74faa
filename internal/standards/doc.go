// Package standards loads team standards documents and resolves which of
// them apply to a set of changed files.
//
// Resolution is deterministic: the "global" document always comes first,
// followed by one document per mapped extension in the order the files
// appear. The extension table is static data ([DefaultTable]) that can be
// extended from configuration with [Table.With]. Nothing here truncates;
// bounding the merged text is the caller's job.
package standards
