// SPDX-License-Identifier: MPL-2.0

// Package manifest models the declarative list of input items a benchmark run
// needs staged before launch, together with its YAML on-disk form.
//
// A manifest names each input, where it comes from, where it must end up
// relative to the run directory, and how to get it there (symlink, copy or
// download). Optional checksums gate the provisioned result:
//
//	inputs:
//	  - name: initial-conditions
//	    source_uri: /data/shared/ic.grib
//	    local_path: input/ic.grib
//	    strategy: symlink
//	  - name: climatology
//	    source_uri: https://example.int/clim.tar.gz
//	    local_path: input/clim.tar.gz
//	    strategy: download
//	    checksum: 9f86d081884c7d65...
//	    checksum_algorithm: sha256
package manifest
