package test

import (
	"fedi_engine/test/mocks"
	"go.uber.org/mock/gomock"
)

// StubLogger lets the component under test log whatever it wants.
func StubLogger(mockLogger *mocks.MockILogger) {
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Printf(gomock.Any(), gomock.Any()).AnyTimes()
}

// StubPolicy allows every host except the ones listed.
func StubPolicy(mockPolicy *mocks.MockIFederationPolicy, blocked ...string) {
	mockPolicy.EXPECT().IsAllowed(gomock.Any()).DoAndReturn(func(host string) bool {
		for _, b := range blocked {
			if host == b {
				return false
			}
		}
		return host != ""
	}).AnyTimes()
}
