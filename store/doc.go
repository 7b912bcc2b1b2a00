// Package store resolves stream locations to backends.
//
// A location is either a plain filesystem path or "<scheme>://<key>" where the
// scheme was registered on the Resolver:
//
//	/var/lib/ann/docs.index        local file
//	file:///var/lib/ann/docs.index local file
//	sqlite:///var/lib/ann.db#docs  row "docs" of the ann_storage table
//	s3://bucket/path/docs.index    S3 object
//	minio://bucket/docs.index      MinIO object
package store
