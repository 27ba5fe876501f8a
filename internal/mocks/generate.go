package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name TokenRefresher --dir ../usecase --output usecase --outpkg usecasemock --filename token_refresher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name AuthCodeExchanger --dir ../usecase --output usecase --outpkg usecasemock --filename auth_code_exchanger_mock.go
