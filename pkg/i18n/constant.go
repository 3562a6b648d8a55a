package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL        = "error.internal"
	ERROR_NOT_FOUND       = "error.notfound"
	ERROR_INVALIDARGUMENT = "error.invalidargument"
	ERROR_UNAUTHORIZED    = "error.unauthorized"

	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_EXIST             = "error.exist"
	ERROR_TITLE_EXIST       = "error.title.exist"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"

	ERROR_UPLOAD_FAIL        = "error.upload.fail"
	ERROR_FILE_TYPE_UNSPPORT = "error.file.type.unsupport"
	ERROR_FILE_READ_FAIL     = "error.file.read_file"

	ERROR_INDEX_BUSY          = "error.index.busy"
	ERROR_QA_ASK_LIMIT        = "error.qa.ask.limit"
	ERROR_QA_TOKEN_LIMIT      = "error.qa.token.limit"
	ERROR_QUESTION_TOO_LONG   = "error.qa.question.too_long"
	ERROR_NO_RETRIEVED_PIECES = "error.qa.retrieve.empty"

	ERROR_INVALID_TOKEN = "error.invalid.token"
)
