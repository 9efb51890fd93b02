/*Package wholefile is a batch source that reads whole files, rather than
lines, and emits each file as a single record.

Every record has the same two-field schema: filePath, the path the file was
read from, and body, the file's raw bytes. The source is configured with a
reference name, used to tag its input for lineage, and a path. The path may
be a file, a directory, a glob, or a comma separated list of those, on the
local disk, S3 (s3://bucket/key) or MinIO (minio://bucket/key). It may also
be a ${macro} that is resolved from runtime arguments when a run starts.

The Driver runs a source locally: it validates the configuration, resolves
macros, lists the input, reads the files on a bounded pool of workers and
writes the emitted records as JSON lines or Parquet under a per-run
directory.
*/
package wholefile
