// Package statuscode holds the numeric outcome vocabulary shared by the
// framework's collaborators (web requests, encryption, asset loading).
//
// Values are stable: 0 and 1 report success, and the block starting at 65511
// names specific failure kinds. The lifecycle core does not return these
// directly; hooks that call collaborators wrap them into errors with Err.
package statuscode

import (
	"errors"
	"fmt"
	"strconv"
)

// Code is a framework status code.
type Code uint16

const (
	Succeed                         Code = 0
	Finished                        Code = 1
	NoUpdate                        Code = 65511
	NeedUpdate                      Code = 65512
	SelfRepositoryInfoNull          Code = 65513
	RepositoryInfoListNull          Code = 65514
	BaseVersionIsLow                Code = 65517
	FileNotFound                    Code = 65518
	EncryptionError                 Code = 65519
	TimeOut                         Code = 65520
	IllegalPath                     Code = 65521
	NetworkError                    Code = 65522
	PlatformError                   Code = 65523
	UploadError                     Code = 65524
	CopyBundleToStreamingAssetError Code = 65526
	SameRepositoryExists            Code = 65527
	MoveDirError                    Code = 65528
	DirectoryNotFound               Code = 65529
	ReadFileError                   Code = 65530
	MatchPackageInfoByChannel       Code = 65531
	ParseJSONError                  Code = 65532
	DownloadError                   Code = 65533
	NoneTask                        Code = 65534
	Error                           Code = 65535
)

var names = map[Code]string{
	Succeed:                         "succeed",
	Finished:                        "finished",
	NoUpdate:                        "no_update",
	NeedUpdate:                      "need_update",
	SelfRepositoryInfoNull:          "self_repository_info_null",
	RepositoryInfoListNull:          "repository_info_list_null",
	BaseVersionIsLow:                "base_version_is_low",
	FileNotFound:                    "file_not_found",
	EncryptionError:                 "encryption_error",
	TimeOut:                         "timeout",
	IllegalPath:                     "illegal_path",
	NetworkError:                    "network_error",
	PlatformError:                   "platform_error",
	UploadError:                     "upload_error",
	CopyBundleToStreamingAssetError: "copy_bundle_to_streaming_asset_error",
	SameRepositoryExists:            "same_repository_exists",
	MoveDirError:                    "move_dir_error",
	DirectoryNotFound:               "directory_not_found",
	ReadFileError:                   "read_file_error",
	MatchPackageInfoByChannel:       "match_package_info_by_channel",
	ParseJSONError:                  "parse_json_error",
	DownloadError:                   "download_error",
	NoneTask:                        "none_task",
	Error:                           "error",
}

// String returns the snake_case name of the code, or its number when unknown.
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "code(" + strconv.Itoa(int(c)) + ")"
}

// OK reports whether c is Succeed or Finished.
func (c Code) OK() bool { return c == Succeed || c == Finished }

// Err wraps c into an error carrying msg. It returns nil for OK codes.
func (c Code) Err(msg string) error {
	if c.OK() {
		return nil
	}
	return &CodeError{Code: c, Msg: msg}
}

// Errorf is Err with formatting. %w verbs are honored.
func (c Code) Errorf(format string, args ...any) error {
	if c.OK() {
		return nil
	}
	err := fmt.Errorf(format, args...)
	return &CodeError{Code: c, Msg: err.Error(), cause: errors.Unwrap(err)}
}

// All returns every known code in ascending order.
func All() []Code {
	return []Code{
		Succeed, Finished, NoUpdate, NeedUpdate, SelfRepositoryInfoNull,
		RepositoryInfoListNull, BaseVersionIsLow, FileNotFound, EncryptionError,
		TimeOut, IllegalPath, NetworkError, PlatformError, UploadError,
		CopyBundleToStreamingAssetError, SameRepositoryExists, MoveDirError,
		DirectoryNotFound, ReadFileError, MatchPackageInfoByChannel,
		ParseJSONError, DownloadError, NoneTask, Error,
	}
}

// CodeError is an error tagged with a status code.
type CodeError struct {
	Code  Code
	Msg   string
	cause error
}

func (e *CodeError) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}

func (e *CodeError) Unwrap() error { return e.cause }

// Is matches another *CodeError with the same code, so callers can write
// errors.Is(err, statuscode.TimeOut.Err("")).
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	return ok && t.Code == e.Code
}

// CodeOf extracts the status code from err. nil maps to Succeed and errors
// without a code map to Error.
func CodeOf(err error) Code {
	if err == nil {
		return Succeed
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return Error
}

// Is reports whether err carries code c.
func Is(err error, c Code) bool { return err != nil && CodeOf(err) == c }
