package i18n

var catalogs = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":              "请求参数有误",
		"error.unauthorized":             "未登录或登录已过期",
		"error.forbidden":                "没有访问权限",
		"error.not_found":                "资源不存在",
		"error.internal":                 "服务器内部错误",
		"error.too_many_requests":        "请求过于频繁，请稍后再试",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":   "限流服务暂不可用，请稍后再试",
		"error.login_too_frequent":       "登录尝试过于频繁，请 %d 秒后再试",
		"error.jwt_secret_missing":       "服务端鉴权配置缺失",
		"error.token_invalid":            "登录凭证无效或已过期",
		"error.auth_header_missing":      "缺少认证信息",
		"error.auth_header_invalid":      "认证信息格式不正确",
		"error.user_id_invalid":          "用户标识无效",
		"error.user_id_type_invalid":     "用户标识类型无效",
		"error.invalid_credentials":      "邮箱或密码错误",
		"error.user_disabled":            "账号已被禁用",
		"error.user_role_invalid":        "用户角色无效",
		"error.invalid_email":            "邮箱格式不正确",
		"error.email_exists":             "邮箱已被注册",
		"error.invalid_password":         "原密码不正确",
		"error.weak_password":            "密码强度不足",
		"error.profile_empty":            "没有需要更新的资料",
		"error.password_min_length":      "密码长度不能少于 %d 位",
		"error.password_require_upper":   "密码需要包含大写字母",
		"error.password_require_lower":   "密码需要包含小写字母",
		"error.password_require_number":  "密码需要包含数字",
		"error.password_require_special": "密码需要包含特殊字符",

		"error.delivery_not_found":          "交付记录不存在或无权访问",
		"error.delivery_method_invalid":     "交付方式无效",
		"error.delivery_status_conflict":    "交付状态已变更，请刷新后重试",
		"error.dispute_reason_too_short":    "异议说明过短",
		"error.delivery_fetch_failed":       "交付记录查询失败",
		"error.delivery_create_failed":      "交付记录创建失败",
		"error.delivery_update_failed":      "交付记录更新失败",
		"error.reschedule_reason_too_short": "改期原因过短",
		"error.reschedule_date_invalid":     "改期日期不能早于今天",
		"error.reschedule_pending":          "已有待处理的改期申请",
		"error.reschedule_not_pending":      "当前没有待处理的改期申请",

		"error.order_not_found":      "订单不存在",
		"error.order_status_invalid": "订单状态不支持该操作",
		"error.order_fetch_failed":   "订单查询失败",
		"error.login_failed":         "登录失败，请稍后再试",
	},
	LocaleEN: {
		"error.bad_request":              "invalid request parameters",
		"error.unauthorized":             "unauthorized or session expired",
		"error.forbidden":                "permission denied",
		"error.not_found":                "resource not found",
		"error.internal":                 "internal server error",
		"error.too_many_requests":        "too many requests, please retry later",
		"error.rate_limited":             "too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":   "rate limiter unavailable, please retry later",
		"error.login_too_frequent":       "too many login attempts, please retry in %d seconds",
		"error.jwt_secret_missing":       "server auth configuration missing",
		"error.token_invalid":            "token invalid or expired",
		"error.auth_header_missing":      "missing authorization header",
		"error.auth_header_invalid":      "malformed authorization header",
		"error.user_id_invalid":          "invalid user identity",
		"error.user_id_type_invalid":     "invalid user identity type",
		"error.invalid_credentials":      "invalid email or password",
		"error.user_disabled":            "account disabled",
		"error.user_role_invalid":        "invalid user role",
		"error.invalid_email":            "invalid email format",
		"error.email_exists":             "email already registered",
		"error.invalid_password":         "current password incorrect",
		"error.weak_password":            "password too weak",
		"error.profile_empty":            "nothing to update",
		"error.password_min_length":      "password must be at least %d characters",
		"error.password_require_upper":   "password must contain an uppercase letter",
		"error.password_require_lower":   "password must contain a lowercase letter",
		"error.password_require_number":  "password must contain a digit",
		"error.password_require_special": "password must contain a special character",

		"error.delivery_not_found":          "delivery record not found or not accessible",
		"error.delivery_method_invalid":     "invalid delivery method",
		"error.delivery_status_conflict":    "delivery status changed, please refresh and retry",
		"error.dispute_reason_too_short":    "dispute notes too short",
		"error.delivery_fetch_failed":       "failed to fetch delivery records",
		"error.delivery_create_failed":      "failed to create delivery records",
		"error.delivery_update_failed":      "failed to update delivery record",
		"error.reschedule_reason_too_short": "reschedule reason too short",
		"error.reschedule_date_invalid":     "reschedule date cannot be in the past",
		"error.reschedule_pending":          "a reschedule request is already pending",
		"error.reschedule_not_pending":      "no pending reschedule request",

		"error.order_not_found":      "order not found",
		"error.order_status_invalid": "order status does not allow this operation",
		"error.order_fetch_failed":   "failed to fetch orders",
		"error.login_failed":         "login failed, please retry later",
	},
}
