package errors

import "fmt"

// RegistrationError reports an invalid route, handler or middleware registration
func RegistrationError(componentType, name, reason string) *BaseError {
	return Newf(RegistrationErrorCode, "invalid %s %s: %s", componentType, name, reason).
		WithContext("component_type", componentType).
		WithContext("component_name", name)
}

// WrapStartupError wraps a failure of one lifecycle stage
func WrapStartupError(stage string, cause error) *BaseError {
	return Wrap(StartupErrorCode, fmt.Sprintf("startup failed during %s", stage), cause).
		WithContext("stage", stage)
}

// StartupError reports a lifecycle misuse
func StartupError(stage, message string) *BaseError {
	return Newf(StartupErrorCode, "startup failed during %s: %s", stage, message).
		WithContext("stage", stage)
}

// WrapDependencyError wraps dependency injection errors
func WrapDependencyError(dependencyType string, cause error) *BaseError {
	message := fmt.Sprintf("failed to resolve dependencies of %s", dependencyType)
	return Wrap(DependencyErrorCode, message, cause).
		WithContext("dependency_type", dependencyType)
}

// DependencyError creates a dependency error
func DependencyError(dependencyType, message string) *BaseError {
	return Newf(DependencyErrorCode, "dependency error for %s: %s", dependencyType, message).
		WithContext("dependency_type", dependencyType)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	return Newf(ConfigurationErrorCode, "configuration error in '%s': %s", configType, message).
		WithContext("config_type", configType)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", item), cause).
		WithContext("target", item)
}
