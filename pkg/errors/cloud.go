package errors

import (
	"fmt"
)

// ErrWrongConfigType indicates the passed-in ProviderConfig does not belong
// to the provider it was handed to.
type ErrWrongConfigType struct {
	Got  interface{}
	Want string
}

func (e ErrWrongConfigType) Error() string {
	return fmt.Sprintf("unexpected provider config type %T, want %s", e.Got, e.Want)
}

func NewWrongConfigType(got interface{}, want string) error {
	return ErrWrongConfigType{Got: got, Want: want}
}

// ErrAWSConfigLoad wraps failures loading AWS SDK config.
type ErrAWSConfigLoad struct {
	Region string
	Err    error
}

func (e ErrAWSConfigLoad) Error() string {
	return fmt.Sprintf("unable to load AWS SDK config for region %s: %v", e.Region, e.Err)
}

func (e ErrAWSConfigLoad) Unwrap() error {
	return e.Err
}

func NewAWSConfigLoad(region string, err error) error {
	return ErrAWSConfigLoad{Region: region, Err: err}
}

// ErrDescribeRegions wraps failures discovering the enabled AWS regions.
type ErrDescribeRegions struct {
	Err error
}

func (e ErrDescribeRegions) Error() string {
	return fmt.Sprintf("failed to describe regions: %v", e.Err)
}

func (e ErrDescribeRegions) Unwrap() error {
	return e.Err
}

func NewDescribeRegions(err error) error {
	return ErrDescribeRegions{Err: err}
}

// ErrDescribeInstances wraps failures in DescribeInstances for one region.
type ErrDescribeInstances struct {
	Region string
	Err    error
}

func (e ErrDescribeInstances) Error() string {
	return fmt.Sprintf("failed to describe instances in %s, make sure your AWS credentials have not timed out: %v", e.Region, e.Err)
}

func (e ErrDescribeInstances) Unwrap() error {
	return e.Err
}

func NewDescribeInstances(region string, err error) error {
	return ErrDescribeInstances{Region: region, Err: err}
}

// ErrAzureCredential wraps failures building the Azure token credential.
type ErrAzureCredential struct {
	Err error
}

func (e ErrAzureCredential) Error() string {
	return fmt.Sprintf("error initializing Azure credential: %v", e.Err)
}

func (e ErrAzureCredential) Unwrap() error {
	return e.Err
}

func NewAzureCredential(err error) error {
	return ErrAzureCredential{Err: err}
}

// ErrAzureClient wraps failures creating an Azure management client.
type ErrAzureClient struct {
	Service string
	Err     error
}

func (e ErrAzureClient) Error() string {
	return fmt.Sprintf("error creating %s api client: %v", e.Service, e.Err)
}

func (e ErrAzureClient) Unwrap() error {
	return e.Err
}

func NewAzureClient(service string, err error) error {
	return ErrAzureClient{Service: service, Err: err}
}

// ErrListVirtualMachines wraps failures listing the subscription's VMs.
type ErrListVirtualMachines struct {
	SubscriptionID string
	Err            error
}

func (e ErrListVirtualMachines) Error() string {
	return fmt.Sprintf("failed to list virtual machines of subscription %s: %v", e.SubscriptionID, e.Err)
}

func (e ErrListVirtualMachines) Unwrap() error {
	return e.Err
}

func NewListVirtualMachines(subscriptionID string, err error) error {
	return ErrListVirtualMachines{SubscriptionID: subscriptionID, Err: err}
}

// ErrMissingFunctionTag is reported for a VM that carries tags but not the
// grouping tag.
type ErrMissingFunctionTag struct {
	VM     string
	TagKey string
}

func (e ErrMissingFunctionTag) Error() string {
	return fmt.Sprintf("virtual machine %s has tags but no %q tag", e.VM, e.TagKey)
}

func NewMissingFunctionTag(vm, tagKey string) error {
	return ErrMissingFunctionTag{VM: vm, TagKey: tagKey}
}

// ErrResolveInterface wraps failures fetching a network interface's IP
// configurations.
type ErrResolveInterface struct {
	InterfaceID string
	Err         error
}

func (e ErrResolveInterface) Error() string {
	return fmt.Sprintf("failed to fetch private ip of network interface %s: %v", e.InterfaceID, e.Err)
}

func (e ErrResolveInterface) Unwrap() error {
	return e.Err
}

func NewResolveInterface(id string, err error) error {
	return ErrResolveInterface{InterfaceID: id, Err: err}
}

// ErrUnitFailure is returned when a per-instance failure aborts the run
// under the abort policy.
type ErrUnitFailure struct {
	Unit string
	Err  error
}

func (e ErrUnitFailure) Error() string {
	return fmt.Sprintf("aborting on failed unit %s: %v", e.Unit, e.Err)
}

func (e ErrUnitFailure) Unwrap() error {
	return e.Err
}

func NewUnitFailure(unit string, err error) error {
	return ErrUnitFailure{Unit: unit, Err: err}
}
