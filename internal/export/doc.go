// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

/*
Package export implements the backup export pipeline: decode Unimus backup
payloads and persist them in a per-device directory tree.

# Overview

The pipeline runs sequentially, one device and one backup at a time:

 1. Health gate: abort unless the Unimus server reports status OK
 2. List devices (always, for directory naming in both modes)
 3. Fetch backups: newest per device ("latest") or every retained one ("all")
 4. Decode each base64 payload and write it to disk
 5. Optionally hand the tree to the git syncer

# Directory Layout

	<backup_dir>/
	    <label>-<deviceID>/
	        <validSince>-<backupID>.txt
	        <validSince>-<backupID>.bin

label is the device address (or description as fallback) sanitized to a
filesystem-safe slug; validSince is formatted as 2006-01-02-15-04-05 in UTC.
The id suffixes keep names collision-free when labels repeat.

Existing files are never rewritten. In latest mode every other file in the
device directory is pruned first, so each directory holds exactly the
current configuration; in all mode files accumulate.

# Error Handling

Failures are ranked by blast radius:

  - *unimus.APIError (and any other client error) aborts the whole run
  - *DecodeError skips one backup, nothing is written for it
  - *WriteError skips one backup, the run continues
  - git failures are recorded on the run result, the filesystem export stands

Each finished run produces a RunResult stored in the StatusStore for the ops
API, whether it succeeded or not.

# See Also

  - internal/unimus: API client feeding the pipeline
  - internal/gitsync: git commit and push of the exported tree
  - internal/server: ops endpoints serving the last RunResult
*/
package export
